package main

import (
	"context"

	"github.com/TanishSen/Learn-Scope/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	rp := user.ResetPassword{Username: uname, Password: pwd, PasswordConfirm: pwd}
	if err := rp.Validate(cli.validate); err != nil {
		return err
	}
	return cli.usrSvc.ResetPassword(context.Background(), rp)
}
