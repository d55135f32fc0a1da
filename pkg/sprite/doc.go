// Package sprite loads source images and composes packed sprite sheets.
//
// Sources are loaded from a directory in sorted filename order, so two runs
// over the same files always produce the same sheet. Composition places each
// source at its packed position and can emit an upscaled retina variant.
package sprite
