package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/user"
)

// addUser creates an account through the admin endpoint.
func (cli *commandLine) addUser(ctx context.Context, name, email, role string) error {
	token, err := cli.adminToken(ctx)
	if err != nil {
		return err
	}
	pwd, err := cli.prompt(fmt.Sprintf("Enter password of %s:", email))
	if err != nil {
		return err
	}
	if pwd == "" {
		return errHelp
	}

	var usr user.User
	nu := user.NewUser{
		Name:     name,
		Email:    core.CleanString(email, true /* lower */),
		Password: pwd,
		Role:     user.Role(strings.ToUpper(role)),
	}
	if err := cli.api.do(ctx, rest.Post, "/v1/users", token, nil, nu, &usr); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created %s %s (%s)\n", usr.Role, usr.Email, usr.ID)
	return nil
}
