package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/trix-studio/trix/pkg/trix/services"
)

// bindError keeps validator errors intact and marks anything else as bad input.
func bindError(err error) error {
	if isValidationErr(err) {
		return err
	}
	return fmt.Errorf("%w: %v", services.ErrInvalidInput, err)
}

func pathID(ctx *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", services.ErrInvalidInput, ctx.Param("id"))
	}
	return uint(id), nil
}

// formImage reads an optional multipart file. A missing field yields a nil upload.
func formImage(ctx *gin.Context, field string) (*services.Upload, func(), error) {
	noop := func() {}
	fh, err := ctx.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, bindError(err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &services.Upload{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
