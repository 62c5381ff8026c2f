// Package naming knows the acquisition logger's file naming scheme: which
// files are per-channel CSVs, how a file name becomes a legend label, and
// how duplicate labels are told apart when a unique key is needed.
package naming
