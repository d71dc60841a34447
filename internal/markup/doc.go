// Package markup renders frames to static HTML and queries the result.
//
// Element trees are built with golang.org/x/net/html and passed through a
// bluemonday policy, since every prop comes from untrusted component code.
// Select and XPath query a rendered fragment with goquery and htmlquery.
package markup
