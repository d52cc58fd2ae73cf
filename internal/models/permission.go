package models

import "sort"

// Permission: одно именованное право субаккаунта на сервере.
// Существует только вместе со своей записью Subuser.
type Permission struct {
	ID         int
	SubuserID  int
	Permission string
}

// Permissions: каталог прав, которые можно выдать субаккаунту.
var Permissions = map[string]string{
	"power-start":        "Allows the user to start the server.",
	"power-stop":         "Allows the user to stop the server.",
	"power-restart":      "Allows the user to restart the server.",
	"power-kill":         "Allows the user to kill the server process.",
	"send-command":       "Allows the user to send commands to the server console.",
	"list-subusers":      "Allows the user to view the subusers of the server.",
	"view-subuser":       "Allows the user to view subuser permissions.",
	"edit-subuser":       "Allows the user to modify permissions of other subusers.",
	"create-subuser":     "Allows the user to create new subusers.",
	"delete-subuser":     "Allows the user to delete subusers.",
	"view-allocations":   "Allows the user to view the server allocations.",
	"edit-allocation":    "Allows the user to change the default allocation.",
	"view-startup":       "Allows the user to view the startup command.",
	"edit-startup":       "Allows the user to change startup variables.",
	"view-sftp":          "Allows the user to view SFTP details.",
	"view-sftp-password": "Allows the user to view the SFTP password.",
	"reset-sftp":         "Allows the user to reset the SFTP password.",
	"access-sftp":        "Allows the user to connect over SFTP.",
	"list-files":         "Allows the user to list files.",
	"edit-files":         "Allows the user to open files for editing.",
	"save-files":         "Allows the user to save modified files.",
	"move-files":         "Allows the user to move and rename files.",
	"copy-files":         "Allows the user to copy files.",
	"compress-files":     "Allows the user to compress files.",
	"decompress-files":   "Allows the user to decompress archives.",
	"create-files":       "Allows the user to create files.",
	"upload-files":       "Allows the user to upload files.",
	"delete-files":       "Allows the user to delete files.",
	"download-files":     "Allows the user to download files.",
	"list-schedules":     "Allows the user to list schedules.",
	"view-schedule":      "Allows the user to view a schedule.",
	"edit-schedule":      "Allows the user to edit a schedule.",
	"create-schedule":    "Allows the user to create schedules.",
	"delete-schedule":    "Allows the user to delete schedules.",
	"toggle-schedule":    "Allows the user to enable or disable schedules.",
	"view-databases":     "Allows the user to view server databases.",
	"reset-db-password":  "Allows the user to reset database passwords.",
	"delete-database":    "Allows the user to delete databases.",
	"create-database":    "Allows the user to create databases.",
}

// IsKnownPermission сообщает, есть ли право в каталоге.
func IsKnownPermission(name string) bool {
	_, ok := Permissions[name]
	return ok
}

// NormalizePermissions убирает дубликаты и сортирует права.
// Возвращает пустой, но не nil срез, чтобы в JSON всегда был массив.
func NormalizePermissions(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	result := make([]string, 0, len(perms))
	for _, p := range perms {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		result = append(result, p)
	}
	sort.Strings(result)
	return result
}
