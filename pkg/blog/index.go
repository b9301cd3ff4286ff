package blog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/folio-dev/blogrender/pkg/langcheck"
)

// IndexReport summarizes a Reindex run.
type IndexReport struct {
	Indexed    int                `json:"indexed" yaml:"indexed"`
	Unchanged  int                `json:"unchanged" yaml:"unchanged"`
	Removed    int                `json:"removed" yaml:"removed"`
	Failed     []IndexFailure     `json:"failed,omitempty" yaml:"failed,omitempty"`
	Mismatches []LanguageMismatch `json:"mismatches,omitempty" yaml:"mismatches,omitempty"`
}

type IndexFailure struct {
	Locale string `json:"locale" yaml:"locale"`
	Slug   string `json:"slug" yaml:"slug"`
	Error  string `json:"error" yaml:"error"`
}

// LanguageMismatch is a post whose prose is detected in a language other
// than its locale's.
type LanguageMismatch struct {
	Locale   string `json:"locale" yaml:"locale"`
	Slug     string `json:"slug" yaml:"slug"`
	Detected string `json:"detected" yaml:"detected"`
}

type indexJob struct {
	locale string
	slug   string
}

type indexResult struct {
	job       indexJob
	unchanged bool
	language  string
	err       error
}

// Reindex loads every post of the given locales (all configured locales
// when none are given) into the index using Site.Workers workers. Posts
// whose source hash is unchanged are skipped; index rows without a source
// are removed.
func (s *Service) Reindex(ctx context.Context, locales ...string) (IndexReport, error) {
	if len(locales) == 0 {
		locales = s.Site.Locales
	}

	var report IndexReport
	var jobList []indexJob
	for _, locale := range locales {
		if err := s.checkLocale(locale); err != nil {
			return report, err
		}
		slugs, err := s.store.ListSlugs(locale)
		if err != nil {
			return report, err
		}
		removed, err := s.pruneIndex(locale, slugs)
		if err != nil {
			return report, err
		}
		report.Removed += removed
		for _, slug := range slugs {
			jobList = append(jobList, indexJob{locale: locale, slug: slug})
		}
	}

	workers := s.Site.Workers
	if workers <= 0 {
		workers = 1
	}
	s.logger.Info("Starting reindex", "locales", locales, "post_count", len(jobList), "workers", workers)

	var wg sync.WaitGroup
	jobs := make(chan indexJob, len(jobList))
	results := make(chan indexResult, len(jobList))

	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go s.indexWorker(ctx, w, &wg, jobs, results)
	}
	for _, job := range jobList {
		jobs <- job
	}
	close(jobs)

	wg.Wait()
	close(results)

	for result := range results {
		switch {
		case result.err != nil:
			report.Failed = append(report.Failed, IndexFailure{
				Locale: result.job.locale,
				Slug:   result.job.slug,
				Error:  result.err.Error(),
			})
		case result.unchanged:
			report.Unchanged++
		default:
			report.Indexed++
		}
		if result.language != "" && !langcheck.Matches(result.job.locale, result.language) {
			report.Mismatches = append(report.Mismatches, LanguageMismatch{
				Locale:   result.job.locale,
				Slug:     result.job.slug,
				Detected: result.language,
			})
			s.logger.Warn("Post language does not match its locale",
				"locale", result.job.locale, "slug", result.job.slug, "detected", result.language)
		}
	}
	sortReport(&report)

	if err := ctx.Err(); err != nil {
		return report, err
	}

	s.mu.Lock()
	for _, locale := range locales {
		s.indexed[locale] = true
	}
	s.mu.Unlock()

	s.logger.Info("Reindex finished", "indexed", report.Indexed, "unchanged", report.Unchanged,
		"removed", report.Removed, "failed", len(report.Failed), "mismatches", len(report.Mismatches))
	return report, nil
}

func (s *Service) indexWorker(ctx context.Context, id int, wg *sync.WaitGroup, jobs <-chan indexJob, results chan<- indexResult) {
	defer wg.Done()
	for job := range jobs {
		results <- s.indexJob(ctx, id, job)
	}
}

func (s *Service) indexJob(ctx context.Context, id int, job indexJob) indexResult {
	result := indexResult{job: job}
	if err := ctx.Err(); err != nil {
		result.err = err
		return result
	}

	raw, err := s.store.ReadPost(job.locale, job.slug)
	if err != nil {
		s.logger.Error("Error reading post", "worker_id", id, "locale", job.locale, "slug", job.slug, "error", err)
		result.err = err
		return result
	}

	hash := ContentHash(raw)
	stored, err := s.index.ContentHash(job.locale, job.slug)
	if err != nil {
		result.err = err
		return result
	}
	if stored == hash {
		existing, err := s.index.GetPost(job.locale, job.slug)
		if err == nil {
			result.unchanged = true
			result.language = existing.Stats.Language
			return result
		}
	}

	post := s.BuildPost(job.locale, job.slug, string(raw))
	if _, err := s.index.UpsertPost(post, hash); err != nil {
		s.logger.Error("Error indexing post", "worker_id", id, "locale", job.locale, "slug", job.slug, "error", err)
		result.err = fmt.Errorf("failed to index %s/%s: %w", job.locale, job.slug, err)
		return result
	}
	result.language = post.Stats.Language
	s.logger.Debug("Indexed post", "worker_id", id, "locale", job.locale, "slug", job.slug)
	return result
}

// pruneIndex deletes index rows of locale whose slug is not in slugs.
func (s *Service) pruneIndex(locale string, slugs []string) (int, error) {
	present := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		present[slug] = struct{}{}
	}

	indexed, err := s.index.Slugs(locale)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, slug := range indexed {
		if _, ok := present[slug]; ok {
			continue
		}
		if err := s.index.DeletePost(locale, slug); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func sortReport(r *IndexReport) {
	sort.Slice(r.Failed, func(i, j int) bool {
		if r.Failed[i].Locale != r.Failed[j].Locale {
			return r.Failed[i].Locale < r.Failed[j].Locale
		}
		return r.Failed[i].Slug < r.Failed[j].Slug
	})
	sort.Slice(r.Mismatches, func(i, j int) bool {
		if r.Mismatches[i].Locale != r.Mismatches[j].Locale {
			return r.Mismatches[i].Locale < r.Mismatches[j].Locale
		}
		return r.Mismatches[i].Slug < r.Mismatches[j].Slug
	})
}
