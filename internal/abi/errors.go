package abi

import "errors"

var (
	ErrDuplicateType    = errors.New("duplicate type")
	ErrDuplicateSyscall = errors.New("duplicate syscall")
	ErrDuplicateMember  = errors.New("duplicate member")
	ErrBadVariantTag    = errors.New("variant tag must be an enum or alias")
	ErrRangeOfUnsized   = errors.New("range of unsized type")
	ErrDependencyCycle  = errors.New("dependency cycle")
)
