package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/store"
	"github.com/trezcool/educode/core/user"
)

// readPasswordFunc prompts for a password; it returns "" when no one can answer.
type readPasswordFunc func(prompt string) (string, error)

func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}
	fmt.Print(prompt)
	pwd, err := term.ReadPassword(fd)
	fmt.Println()
	return string(pwd), err
}

// ensureSuperAdmin creates the configured super-admin account unless it already exists.
// The password comes from the config, or is prompted for on an interactive terminal.
// Without either the platform starts without a super-admin.
func ensureSuperAdmin(conf *core.Config, st *store.Store, readPwd readPasswordFunc) error {
	for _, u := range st.Users(user.QueryFilter{Search: conf.SuperAdminEmail, Role: user.RoleAdmin}) {
		if u.Email == conf.SuperAdminEmail {
			return nil
		}
	}

	pwd := conf.SuperAdminPassword
	if pwd == "" {
		var err error
		if pwd, err = readPwd(fmt.Sprintf("Enter password for super-admin %s: ", conf.SuperAdminEmail)); err != nil {
			return errors.Wrap(err, "reading password")
		}
		if pwd == "" {
			return nil
		}
	}

	_, err := st.CreateUser(user.NewUser{
		Name:     "Super Admin",
		Email:    conf.SuperAdminEmail,
		Password: pwd,
		Role:     user.RoleAdmin,
	})
	return errors.Wrap(err, "creating super-admin")
}
