// Package host defines the contract between conversion kernels and a dynamic
// value system.
//
// A Host classifies values (Kind), extracts their contents (AsInt64, AsUTF8,
// Items, ...) and builds new ones (MakeInt, MakeText, MakeSequence, ...).
// Kernels never inspect values directly, so any dynamic value system can be
// plugged in; package gohost provides one over plain Go values.
//
// Values are opaque handles. Hosts with reference counting observe Release
// calls; every slot written by a kernel releases its previous value first
// (see Replace).
package host
