// Package schema provides helper functions for creating JSON Schema definitions.
//
// Tool parameter schemas are usually reflected from input structs; these
// helpers cover the cases reflection cannot express cleanly, such as string
// enums.
package schema
