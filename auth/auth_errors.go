package auth

import apperrors "github.com/jrsteele09/agro-console/internal/errors"

var (
	ErrNoRefreshToken  = apperrors.ErrNoRefreshToken
	ErrIncompleteLogin = apperrors.ErrIncompleteLogin
	ErrSessionExpired  = apperrors.ErrSessionExpired
	ErrNoSession       = apperrors.ErrNoSession
)
