// Package main provides the entry point for the slicestack3d CLI.
//
// slicestack3d synthesizes a stack of 2D slices that mimics CT/MRI data,
// reports its volume and approximate surface area, and optionally renders a
// 3D view of the stack.
//
// Usage:
//
//	slicestack3d
//	slicestack3d --mode shrinking --plot stack.png
//
// See --help for all available options.
package main

func main() {
	Execute()
}
