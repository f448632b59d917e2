// Package crawler holds the pure page-level decisions of a scan: whether a
// fetched page is a real content page, which of its anchors look like
// report PDFs, which of those are worth following as subpages, and which
// ESG topics the page text mentions.
//
// Nothing in this package performs I/O. Pages are fetched by the fetch
// package and the order of work is decided by the pipeline package.
//
//	if crawler.IsValidPage(page.Title, page.HTML) {
//	    links, err := crawler.Harvest(page)
//	    ...
//	    next := crawler.SelectSubpages(links, crawler.DefaultMaxSubpages)
//	}
package crawler
