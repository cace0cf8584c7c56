package protocol

import "strconv"

// Opcode identifies a request, a server-pushed item or a response status.
// The numeric values are shared with clients and must not change.
type Opcode int32

// Authentication requests.
const (
	OpLogin         Opcode = 10
	OpLogout        Opcode = 11
	OpReauth        Opcode = 12
	OpRequestCookie Opcode = 13
)

// Group requests and server-pushed group items.
const (
	OpGroupList  Opcode = 20
	OpGroupUse   Opcode = 21
	OpGroupJoin  Opcode = 22
	OpGroupLeave Opcode = 23
	OpGroupNew   Opcode = 24
	OpGroupCount Opcode = 25
	OpGroupName  Opcode = 26
)

// Browsing requests and server-pushed listing items.
const (
	OpBrowseList       Opcode = 30
	OpBrowseCd         Opcode = 31
	OpBrowseMkdir      Opcode = 32
	OpBrowseDeleteFile Opcode = 33
	OpBrowseDeleteDir  Opcode = 34
	OpFileCount        Opcode = 35
	OpDirCount         Opcode = 36
	OpFileName         Opcode = 37
	OpDirName          Opcode = 38
)

// OpContinue asks for the next queued item of a multi-item response.
const OpContinue Opcode = 40

// Status codes.
const (
	StatusOK             Opcode = 100
	StatusBadRequest     Opcode = 101
	StatusWrongPassword  Opcode = 102
	StatusNotLoggedIn    Opcode = 103
	StatusLocked         Opcode = 104
	StatusAnotherClient  Opcode = 105
	StatusAlreadyInGroup Opcode = 106
	StatusGroupExists    Opcode = 107
	StatusAlreadyExists  Opcode = 108
	StatusServerFail     Opcode = 109
	StatusForbidden      Opcode = 110
	StatusNotFound       Opcode = 111
)

var opcodeNames = map[Opcode]string{
	OpLogin:              "login",
	OpLogout:             "logout",
	OpReauth:             "reauth",
	OpRequestCookie:      "request-cookie",
	OpGroupList:          "group-list",
	OpGroupUse:           "group-use",
	OpGroupJoin:          "group-join",
	OpGroupLeave:         "group-leave",
	OpGroupNew:           "group-new",
	OpGroupCount:         "group-count",
	OpGroupName:          "group-name",
	OpBrowseList:         "browse-list",
	OpBrowseCd:           "browse-cd",
	OpBrowseMkdir:        "browse-mkdir",
	OpBrowseDeleteFile:   "browse-delete-file",
	OpBrowseDeleteDir:    "browse-delete-dir",
	OpFileCount:          "file-count",
	OpDirCount:           "dir-count",
	OpFileName:           "file-name",
	OpDirName:            "dir-name",
	OpContinue:           "continue",
	StatusOK:             "ok",
	StatusBadRequest:     "bad-request",
	StatusWrongPassword:  "wrong-password",
	StatusNotLoggedIn:    "not-logged-in",
	StatusLocked:         "locked",
	StatusAnotherClient:  "another-client",
	StatusAlreadyInGroup: "already-in-group",
	StatusGroupExists:    "group-exists",
	StatusAlreadyExists:  "already-exists",
	StatusServerFail:     "server-fail",
	StatusForbidden:      "forbidden",
	StatusNotFound:       "not-found",
}

func (o Opcode) String() string {
	if s, ok := opcodeNames[o]; ok {
		return s
	}
	return "opcode(" + strconv.Itoa(int(o)) + ")"
}

// IsStatus reports whether o is one of the status codes.
func (o Opcode) IsStatus() bool {
	return o >= StatusOK && o <= StatusNotFound
}
