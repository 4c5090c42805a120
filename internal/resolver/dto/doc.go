// Package dto holds the JSON records printed by the external resolver.
package dto
