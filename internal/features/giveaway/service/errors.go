package service

import (
	"errors"

	"giveaway-entry-backend/internal/features/giveaway/repository"
)

var (
	ErrGiveawayNotFound = repository.ErrGiveawayNotFound
	ErrAlreadyFinished  = repository.ErrAlreadyFinished
	ErrCooldownActive   = repository.ErrCooldownActive

	ErrGiveawayClosed   = errors.New("giveaway is not accepting entries")
	ErrUnknownChannel   = errors.New("unknown share channel")
	ErrNothingToConfirm = errors.New("no shares to confirm")
	ErrSessionNotFound  = errors.New("share session not found")
)
