package service

import "github.com/mechshop/service-api/internal/core/ports"

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// NormalizePage clamps a requested page into range.
func NormalizePage(p ports.Page) ports.Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func pageMeta(p ports.Page, total int64) ports.PageMeta {
	pages := 0
	if total > 0 {
		pages = int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	}
	return ports.PageMeta{Page: p.Page, PerPage: p.PerPage, Total: total, Pages: pages}
}
