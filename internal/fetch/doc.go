// Package fetch loads company web pages for the probe pipeline.
//
// Two implementations of Fetcher are provided. BrowserFetcher renders pages
// in a shared headless Chrome so that script-injected download buttons are
// present in the returned HTML. HTTPFetcher issues plain GET requests and is
// used when Chrome is unavailable and in tests. Throttled wraps either one
// to enforce a minimum interval between requests.
package fetch
