// Package abi provides internal layout arithmetic shared by the layout and
// kernel packages: overflow-checked offset math, alignment, category index
// widths and the tick constants of the date/time storage formats.
package abi
