// Package textenc encodes and decodes stored text. UTF-8 is the interchange
// encoding; storage may be ASCII, UTF-8, UTF-16 or UTF-32 (little-endian, no BOM).
package textenc
