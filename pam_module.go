//go:build go_pam_module

//go:generate go build "-ldflags=-extldflags -Wl,-soname,pam_ldap_map.so" -buildmode=c-shared -o pam_ldap_map.so -tags go_pam_module

package main

/*
#cgo LDFLAGS: -lpam -fPIC
#include <stdlib.h>
#include <security/pam_modules.h>

typedef const char _const_char_t;

static inline int get_string_item(pam_handle_t *pamh, int item, const char **value) {
	const void *p = NULL;
	int rc = pam_get_item(pamh, item, &p);
	*value = (const char *)p;
	return rc;
}

static inline int set_string_item(pam_handle_t *pamh, int item, const char *value) {
	return pam_set_item(pamh, item, value);
}
*/
import "C"

import (
	"unsafe"

	"github.com/msteinert/pam/v2"

	"github.com/isometry/pam-ldap-map/internal/account"
)

var accountModule = account.New()

// moduleHandle is the itemStore behind a pam_handle_t passed to a pam_sm_* hook.
type moduleHandle struct {
	pamh *C.pam_handle_t
}

func (h moduleHandle) GetItem(item pam.Item) (string, error) {
	var value *C.char
	if rc := C.get_string_item(h.pamh, C.int(item), &value); rc != C.PAM_SUCCESS {
		return "", pam.Error(rc)
	}
	if value == nil {
		return "", nil
	}
	return C.GoString(value), nil
}

func (h moduleHandle) SetItem(item pam.Item, value string) error {
	cs := C.CString(value)
	defer C.free(unsafe.Pointer(cs))

	if rc := C.set_string_item(h.pamh, C.int(item), cs); rc != C.PAM_SUCCESS {
		return pam.Error(rc)
	}
	return nil
}

func sliceFromArgv(argc C.int, argv **C._const_char_t) []string {
	r := make([]string, 0, argc)
	for _, s := range unsafe.Slice(argv, argc) {
		r = append(r, C.GoString((*C.char)(unsafe.Pointer(s))))
	}
	return r
}

//export pam_sm_acct_mgmt
func pam_sm_acct_mgmt(pamh *C.pam_handle_t, flags C.int, argc C.int, argv **C._const_char_t) C.int {
	err := acctMgmt(accountModule, moduleHandle{pamh: pamh}, pam.Flags(flags), sliceFromArgv(argc, argv))
	return C.int(pamStatus(err))
}

//export pam_sm_authenticate
func pam_sm_authenticate(pamh *C.pam_handle_t, flags C.int, argc C.int, argv **C._const_char_t) C.int {
	return C.int(pam.ErrIgnore)
}

//export pam_sm_setcred
func pam_sm_setcred(pamh *C.pam_handle_t, flags C.int, argc C.int, argv **C._const_char_t) C.int {
	return C.int(pam.ErrIgnore)
}

//export pam_sm_open_session
func pam_sm_open_session(pamh *C.pam_handle_t, flags C.int, argc C.int, argv **C._const_char_t) C.int {
	return C.int(pam.ErrIgnore)
}

//export pam_sm_close_session
func pam_sm_close_session(pamh *C.pam_handle_t, flags C.int, argc C.int, argv **C._const_char_t) C.int {
	return C.int(pam.ErrIgnore)
}

//export pam_sm_chauthtok
func pam_sm_chauthtok(pamh *C.pam_handle_t, flags C.int, argc C.int, argv **C._const_char_t) C.int {
	return C.int(pam.ErrIgnore)
}
