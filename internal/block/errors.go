package block

import "errors"

// Block errors.
var (
	// ErrNilDefinition is returned when constructing a block without a
	// tool definition.
	ErrNilDefinition = errors.New("block requires a tool definition")

	// ErrNilAPI is returned when constructing a block without an editor
	// facade.
	ErrNilAPI = errors.New("block requires an editor API")

	// ErrMergeUnsupported is returned when merging into a tool that
	// implements no merge capability.
	ErrMergeUnsupported = errors.New("tool does not support merging")

	// ErrDestroyed is returned when operating on a destroyed block.
	ErrDestroyed = errors.New("block is destroyed")
)
