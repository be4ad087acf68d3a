package service

import (
	"context"
	"errors"

	v1 "diskregistry/api/v1"
	"diskregistry/internal/registry"
	"diskregistry/pkg/log"

	"go.uber.org/zap"
)

var registryErrors = []struct {
	err    error
	apiErr error
}{
	{registry.ErrInvalidSeqNumber, v1.ErrInvalidSeqNumber},
	{registry.ErrInsufficientResources, v1.ErrInsufficientResources},
	{registry.ErrPlacementViolation, v1.ErrPlacementViolation},
	{registry.ErrRateLimited, v1.ErrRateLimited},
	{registry.ErrRejected, v1.ErrRejected},
	{registry.ErrAlreadyExists, v1.ErrPlacementGroupExists},
	{registry.ErrInvalidArgument, v1.ErrBadRequest},
}

// toApiError 把 registry 的错误映射为 v1 业务错误，notFound 为该操作下 ErrNotFound 对应的错误
func toApiError(ctx context.Context, logger *log.Logger, op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, registry.ErrNotFound) {
		if notFound == nil {
			notFound = v1.ErrNotFound
		}
		logger.WithContext(ctx).Warn("registry object not found", zap.String("op", op), zap.Error(err))
		return notFound
	}
	for _, m := range registryErrors {
		if errors.Is(err, m.err) {
			logger.WithContext(ctx).Warn("registry operation rejected", zap.String("op", op), zap.Error(err))
			return m.apiErr
		}
	}
	logger.WithContext(ctx).Error("registry operation failed", zap.String("op", op), zap.Error(err))
	return v1.ErrInternalServerError
}
