package service

import (
	"fmt"

	"rich-text-bridge/internal/pkg/serverutils"
)

var (
	ErrDocumentNotFound  = fmt.Errorf("%w: document", serverutils.ErrNotFound)
	ErrConversionFailed  = fmt.Errorf("%w: conversion failed", serverutils.ErrUnprocessable)
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported export format", serverutils.ErrBadRequest)
	ErrUnknownEmbedKind  = fmt.Errorf("%w: unknown embed kind", serverutils.ErrBadRequest)
	ErrInvalidEmbed      = fmt.Errorf("%w: invalid embed payload", serverutils.ErrBadRequest)
)
