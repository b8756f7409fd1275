package htmlguard

import "errors"

// ErrRelTokenHasWhitespace is returned by builder methods that accept a
// single rel token (e.g. SkipRelsOnLinks) when the token contains
// whitespace. This is a structural usage error (spec §7 "Propagation
// policy": the core never throws for bad *input*, but always rejects
// inconsistent builder state at build time).
var ErrRelTokenHasWhitespace = errors.New("htmlguard: rel token must not contain whitespace")

// ErrNilArgument is returned when a builder method receives a required nil
// callback or policy.
var ErrNilArgument = errors.New("htmlguard: required argument must not be nil")

// ErrorHandler receives one human-readable message per dropped
// renderer-contract-violation (spec §4.5, §7): an invalid element/attribute
// name reaching the renderer, CDATA content containing its own closing
// tag, or a tag event inside a CDATA context. A nil handler silently
// discards these messages.
type ErrorHandler func(message string)
