package main

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"

	"github.com/trezcool/educode/core/admin"
)

func (cli *commandLine) backup(ctx context.Context) error {
	token, err := cli.adminToken(ctx)
	if err != nil {
		return err
	}
	var b admin.Backup
	if err := cli.api.do(ctx, rest.Post, "/v1/admin/backups", token, nil, nil, &b); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "backup %s created (%s)\n", b.Name, b.ID)
	return nil
}
