// Package dto holds the wire shapes found in album page scripts.
package dto
