// Package scraper provides HTTP fetching and HTML field extraction for conference event pages.
//
// A Scraper retrieves a session page body with a single GET (optionally retried with
// exponential backoff). An Extractor pulls the session title and its rating summary out
// of that body in separate stages: structural selection of the heading and the rating
// element, then a fixed textual pattern such as "(4.5, 120 ratings)" applied to the
// rating element's text. Each stage fails with its own sentinel error.
package scraper
