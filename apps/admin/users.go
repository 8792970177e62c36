package main

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"

	echoapi "github.com/trezcool/educode/apps/api/echo"
	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/user"
)

// findUser looks an account up by exact email.
func (cli *commandLine) findUser(ctx context.Context, token, email string) (user.User, error) {
	email = core.CleanString(email, true /* lower */)
	var users []user.User
	if err := cli.api.do(ctx, rest.Get, "/v1/users", token, map[string]string{"search": email}, nil, &users); err != nil {
		return user.User{}, err
	}
	for _, usr := range users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (cli *commandLine) setStatus(ctx context.Context, email, status string) error {
	token, err := cli.adminToken(ctx)
	if err != nil {
		return err
	}
	usr, err := cli.findUser(ctx, token, email)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/v1/users/%s/status", usr.ID)
	if err := cli.api.do(ctx, rest.Put, path, token, nil, echoapi.StatusRequest{Status: status}, &usr); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s is now %s\n", usr.Email, usr.Status)
	return nil
}

// changePassword logs in as the account itself; the API never lets anyone else set a password.
func (cli *commandLine) changePassword(ctx context.Context, email string) error {
	current, err := cli.prompt("Enter current password:")
	if err != nil {
		return err
	}
	newPwd, err := cli.prompt("Enter new password:")
	if err != nil {
		return err
	}
	if current == "" || newPwd == "" {
		return errHelp
	}
	auth, err := cli.api.login(ctx, email, current)
	if err != nil {
		return err
	}
	req := echoapi.ChangePasswordRequest{CurrentPassword: current, NewPassword: newPwd}
	if err := cli.api.do(ctx, rest.Put, "/v1/users/me/password", auth.Token, nil, req, nil); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "password changed")
	return nil
}
