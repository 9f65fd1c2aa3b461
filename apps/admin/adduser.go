package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/nexclass/nexclass/core/user"
)

var errInvalidRoles = fmt.Errorf("roles must be among %v", user.AllRoles)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, uname, email, pwd string, roles []string) error {
	for _, role := range roles {
		if i := sort.SearchStrings(user.AllRoles, role); i == len(user.AllRoles) || user.AllRoles[i] != role {
			return errInvalidRoles
		}
	}
	usr, err := cli.usrSvc.AddUser(context.Background(), name, uname, email, pwd, roles)
	if err != nil {
		return err
	}
	fmt.Printf("user %q saved (%s)\n", usr.Username, usr.ID)
	return nil
}
