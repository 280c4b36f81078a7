package errors

import "errors"

// ErrAmbiguousIdentity 耳标与电子耳标指向不同牛只，或同一标识匹配到多头牛
var ErrAmbiguousIdentity = errors.New("标识信息指向多头牛只，请核对耳标与电子耳标")

// ErrCowExists 同耳标同出生年的牛只已存在
var ErrCowExists = errors.New("该耳标与出生年组合的牛只已存在")
