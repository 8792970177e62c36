package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	api        *apiClient
	adminEmail string
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  adduser -name NAME -email EMAIL [-role student|teacher|admin] - create an account")
	fmt.Fprintln(cli.out, "  setstatus -email EMAIL -status active|locked - lock or unlock an account")
	fmt.Fprintln(cli.out, "  changepassword -email EMAIL - change an account's password")
	fmt.Fprintln(cli.out, "  backup - create a full backup")
}

// prompt reads a password from the terminal without echoing it.
func (cli *commandLine) prompt(label string) (string, error) {
	fmt.Fprint(cli.out, label)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// adminToken logs the operator in as the configured administrator.
func (cli *commandLine) adminToken(ctx context.Context) (string, error) {
	pwd, err := cli.prompt(fmt.Sprintf("Enter password of %s:", cli.adminEmail))
	if err != nil {
		return "", err
	}
	if pwd == "" {
		return "", errHelp
	}
	res, err := cli.api.login(ctx, cli.adminEmail, pwd)
	if err != nil {
		return "", err
	}
	return res.Token, nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserName := addUserCmd.String("name", "", "The user's full name. The password will be prompted next.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserRole := addUserCmd.String("role", "student", "The user's role: student, teacher or admin.")

	setStatusCmd := flag.NewFlagSet("setstatus", flag.ContinueOnError)
	setStatusEmail := setStatusCmd.String("email", "", "The user's email.")
	setStatusStatus := setStatusCmd.String("status", "", "The new status: active or locked.")

	changePasswordCmd := flag.NewFlagSet("changepassword", flag.ContinueOnError)
	changePasswordEmail := changePasswordCmd.String("email", "", "The user's email. Current & new passwords will be prompted next.")

	for _, fs := range []*flag.FlagSet{addUserCmd, setStatusCmd, changePasswordCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(ctx, *addUserName, *addUserEmail, *addUserRole)
	case "setstatus":
		if err := setStatusCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setStatusEmail == "" || *setStatusStatus == "" {
			setStatusCmd.Usage()
			return errHelp
		}
		return cli.setStatus(ctx, *setStatusEmail, *setStatusStatus)
	case "changepassword":
		if err := changePasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *changePasswordEmail == "" {
			changePasswordCmd.Usage()
			return errHelp
		}
		return cli.changePassword(ctx, *changePasswordEmail)
	case "backup":
		return cli.backup(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}
