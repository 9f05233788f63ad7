// Package scan turns directive comments and struct tags into derivation
// directives.
//
// Recognized annotations:
//
//	//mock:derive                      type: derive Mock unconditionally
//	//derive:if(<build expr>) mock,... type: derive Mock under a build constraint
//	//mock:positional                  struct: build with an unkeyed literal
//	//mock:variant [Union,...]         union member: the variant to build
//	`mock:"default"`                   field: zero value instead of a mock
//
// Scanning is pure: the same declaration always yields the same directives.
package scan
