package main

import (
	"context"

	"github.com/TanishSen/Learn-Scope/core/user"
)

// addUser creates a user.User with the same rules as the register endpoint.
func (cli *commandLine) addUser(uname, email, pwd string) error {
	ctx := context.Background()
	nu := user.NewUser{
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err := nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
		return err
	}
	_, err := cli.usrSvc.Create(ctx, nu)
	return err
}
