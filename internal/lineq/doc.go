// Package lineq compiles a declarative Plan into a seq pipeline over text
// lines. It backs the seqq command.
package lineq
