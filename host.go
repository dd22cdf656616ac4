// Package main is the pam_ldap_map PAM module library. Build it with
//
//	go build -tags go_pam_module -buildmode=c-shared -o pam_ldap_map.so
//
// Without the go_pam_module tag only the host translation layer is built.
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/msteinert/pam/v2"

	"github.com/isometry/pam-ldap-map/internal/account"
)

// itemStore reads and writes PAM items. *pam.Transaction satisfies it, as
// does the module-side handle wrapper.
type itemStore interface {
	GetItem(item pam.Item) (string, error)
	SetItem(item pam.Item, value string) error
}

// itemHost exposes PAM_USER to the account module.
type itemHost struct {
	items itemStore
}

func (h itemHost) GetUser() (string, error) {
	user, err := h.items.GetItem(pam.User)
	if err != nil {
		return "", err
	}
	if user == "" {
		return "", fmt.Errorf("empty user item: %w", pam.ErrUserUnknown)
	}
	return user, nil
}

func (h itemHost) SetUser(user string) error {
	return h.items.SetItem(pam.User, user)
}

// silentFromFlags reports whether the caller asked for no user-visible output.
func silentFromFlags(flags pam.Flags) bool {
	return flags&pam.Silent != 0
}

// pamResult maps an account result onto the PAM status space. nil means
// PAM_SUCCESS.
func pamResult(result account.Result) error {
	switch result {
	case account.Success:
		return nil
	case account.AuthErr:
		return pam.ErrAuth
	default:
		return pam.ErrService
	}
}

// pamStatus converts a handler error into the integer returned to libpam.
func pamStatus(err error) int {
	if err == nil {
		return 0
	}

	var pamErr pam.Error
	if errors.As(err, &pamErr) {
		return int(pamErr)
	}

	return int(pam.ErrSystem)
}

// acctMgmt runs one account-management call against items.
func acctMgmt(module *account.Module, items itemStore, flags pam.Flags, args []string) error {
	ctx := account.NewLoggingContext(context.Background())
	result := module.AcctMgmt(ctx, itemHost{items: items}, args, silentFromFlags(flags))
	return pamResult(result)
}

func main() {}
