package domain_transfer

import "errors"

var (
	ErrInvalidTransferID     = errors.New("transfer: invalid transfer_id")
	ErrTransferIDAssigned    = errors.New("transfer: transfer_id already assigned")
	ErrInvalidAccountID      = errors.New("transfer: invalid account_id")
	ErrSameAccount           = errors.New("transfer: source_account_id equals destination_account_id")
	ErrInvalidAmount         = errors.New("transfer: amount must be > 0")
	ErrInvalidCurrency       = errors.New("transfer: currency must be 3-letter ISO-like code")
	ErrInvalidRate           = errors.New("transfer: rate must be > 0")
	ErrMissingIdempotencyKey = errors.New("transfer: idempotency_key is required")

	ErrInvalidStateTransition = errors.New("transfer: invalid state transition")
	ErrAlreadyFinalized       = errors.New("transfer: transfer already finalized")
	ErrNotQuoted              = errors.New("transfer: conversion must be quoted before completion")
	ErrMissingFailureReason   = errors.New("transfer: failure_reason is required to fail transfer")
)
