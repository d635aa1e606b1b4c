// Package users resolves login identities from a passwd-format account
// database and decides which of them dotlinks may manage.
package users
