// Package mediatypes classifies gallery files by extension and maps
// them to MIME content types for serving.
package mediatypes
