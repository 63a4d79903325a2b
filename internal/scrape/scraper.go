package scrape

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/TTMK7777/player-list-scraper/internal/model"
)

// Scraper runs the strategies in escalation order. The first strategy that
// finds enough stores wins; when none does, the partial results are merged.
type Scraper struct {
	strategies []Strategy
	minStores  int
}

func NewScraper(minStores int, strategies ...Strategy) *Scraper {
	if minStores <= 0 {
		minStores = DefaultMinStores
	}
	return &Scraper{strategies: strategies, minStores: minStores}
}

func (s *Scraper) Scrape(ctx context.Context, req Request) model.ScrapingResult {
	start := time.Now()
	result := model.ScrapingResult{
		CompanyName: req.CompanyName,
		URL:         req.URL,
	}

	var partial []model.StoreRecord
	for _, strat := range s.strategies {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, ctx.Err().Error())
			break
		}
		req.progress("戦略を実行: " + strat.Name())

		stores, pages, err := strat.Scrape(ctx, req)
		result.PagesVisited += pages
		if err != nil {
			zap.L().Warn("strategy failed",
				zap.String("strategy", strat.Name()),
				zap.String("company", req.CompanyName),
				zap.Error(err))
			result.Errors = append(result.Errors, strat.Name()+": "+err.Error())
		}

		if len(stores) >= s.minStores {
			result.Stores = stores
			result.StrategyUsed = strat.Name()
			result.ElapsedSecs = time.Since(start).Seconds()
			zap.L().Info("scrape complete",
				zap.String("company", req.CompanyName),
				zap.String("strategy", strat.Name()),
				zap.Int("stores", len(stores)),
				zap.Int("pages", result.PagesVisited))
			return result
		}
		partial = append(partial, stores...)
	}

	result.Stores = Dedupe(partial)
	result.StrategyUsed = "combined"
	result.ElapsedSecs = time.Since(start).Seconds()
	zap.L().Info("scrape complete with partial results",
		zap.String("company", req.CompanyName),
		zap.Int("stores", len(result.Stores)),
		zap.Int("pages", result.PagesVisited))
	return result
}
