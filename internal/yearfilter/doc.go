// Package yearfilter restricts harvested links to the reporting years a
// user asked for.
//
// A link matches a year when the year string appears anywhere in its
// lower-cased URL or visible text. Path and file name patterns such as
// "/2023/" or "esg-2023.pdf" are all covered by that substring rule.
package yearfilter
