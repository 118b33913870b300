// Package container implements handle-addressed storage for linked structures.
package container
