package services

import "errors"

var (
	ErrInvalidOrder        = errors.New("invalid order")
	ErrStoreNotFound       = errors.New("store not found")
	ErrInvalidSubscription = errors.New("invalid subscription update")
	ErrShopOwnerNotFound   = errors.New("shop owner not found")
)
