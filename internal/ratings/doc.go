// Package ratings aggregates stored per-aspect ratings into category/polarity counts.
package ratings
