package cli

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
)

var (
	errLoginRequired = errors.New("please login first")
	errUsage         = errors.New("usage")
)

func usage(text string) error {
	return errors.Join(errUsage, errors.New(text))
}

// describe turns an error into a line for the user.
func describe(err error) string {
	switch {
	case errors.Is(err, errUsage):
		return strings.TrimPrefix(err.Error(), errUsage.Error()+"\n")
	case errors.Is(err, errLoginRequired):
		return errLoginRequired.Error()
	case errors.Is(err, client.ErrUnauthorized):
		return "not authorized, please login again"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	case errors.Is(err, client.ErrNotFound):
		return "task not found"
	case errors.Is(err, client.ErrAlreadyExists):
		return "username already registered"
	default:
		return err.Error()
	}
}
