package graph

import "errors"

var (
	ErrPointNotFound               = errors.New("graph: point not found")
	ErrPointLocked                 = errors.New("graph: point is locked")
	ErrDuplicateID                 = errors.New("graph: duplicate point id")
	ErrInvalidID                   = errors.New("graph: invalid point id")
	ErrSelfLink                    = errors.New("graph: point cannot link to itself")
	ErrUnsupportedOriginConversion = errors.New("graph: unsupported origin conversion")
)
