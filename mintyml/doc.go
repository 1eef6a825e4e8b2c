// Copyright 2023 Jesus Ruiz. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mintyml compiles MinTyML source into HTML or XHTML.
//
// The package is a pure function from a source string and an Options value
// to a rendered document plus a list of recoverable syntax errors: it keeps
// no global state and performs no I/O, so callers may run any number of
// conversions concurrently on disjoint sources.
//
// Convert and ConvertForgiving are the two entry points; everything else in
// this package (Source, the parser, the AST, inference and the writer) is
// the machinery between them.
package mintyml
