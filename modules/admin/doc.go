// Package admin serves /admin/users: account listing, creation, password and
// role changes, deletion, and 2FA reset for non-admin users.
package admin
