package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"ahorrapp/internal/cache"
	"ahorrapp/internal/core"
	"ahorrapp/internal/images"
	"ahorrapp/internal/storage"

	"github.com/shopspring/decimal"
)

// ImageStore uploads and removes hosted wallet and avatar images.
type ImageStore interface {
	Upload(ctx context.Context, filename string, content io.Reader, folder string) (string, error)
	Destroy(ctx context.Context, imageURL string) error
}

// WalletService manages wallets and their hosted images.
type WalletService struct {
	storage   *storage.SQLiteRepository
	images    ImageStore
	summaries *cache.SummaryCache
}

func NewWalletService(storage *storage.SQLiteRepository, imgs ImageStore, summaries *cache.SummaryCache) *WalletService {
	return &WalletService{
		storage:   storage,
		images:    imgs,
		summaries: summaries,
	}
}

// CreateWallet validates and saves a wallet. Totals always start at zero,
// whatever the caller sent.
func (s *WalletService) CreateWallet(ctx context.Context, w core.Wallet) (string, error) {
	if err := w.Validate(); err != nil {
		return "", err
	}

	w.Amount = decimal.Zero
	w.TotalIncome = decimal.Zero
	w.TotalExpenses = decimal.Zero
	if w.Created.IsZero() {
		w.Created = time.Now()
	}

	id, err := s.storage.CreateWallet(ctx, w)
	if err != nil {
		return "", fmt.Errorf("save wallet: %w", err)
	}
	return id, nil
}

// UpdateWallet renames a wallet or swaps its image. Running totals are
// untouched, only the worker writes those.
func (s *WalletService) UpdateWallet(ctx context.Context, w core.Wallet) error {
	if err := w.Validate(); err != nil {
		return err
	}

	prev, err := s.storage.GetWallet(ctx, w.ID)
	if err != nil {
		return fmt.Errorf("load wallet %s: %w", w.ID, err)
	}

	if err := s.storage.UpdateWallet(ctx, w); err != nil {
		return fmt.Errorf("update wallet %s: %w", w.ID, err)
	}

	if prev.Image != w.Image && images.Hosted(prev.Image) {
		s.destroyImage(ctx, prev.Image)
	}
	return nil
}

// UploadImage stores a new wallet image and removes the previous hosted
// one. It returns the hosted URL.
func (s *WalletService) UploadImage(ctx context.Context, walletID, filename string, content io.Reader) (string, error) {
	if s.images == nil {
		return "", fmt.Errorf("image uploads are not configured")
	}

	w, err := s.storage.GetWallet(ctx, walletID)
	if err != nil {
		return "", fmt.Errorf("load wallet %s: %w", walletID, err)
	}

	url, err := s.images.Upload(ctx, filename, content, images.FolderWallets)
	if err != nil {
		return "", fmt.Errorf("upload wallet image: %w", err)
	}

	prev := w.Image
	w.Image = url
	if err := s.storage.UpdateWallet(ctx, w); err != nil {
		return "", fmt.Errorf("update wallet %s: %w", walletID, err)
	}

	if images.Hosted(prev) {
		s.destroyImage(ctx, prev)
	}
	return url, nil
}

// DeleteWallet removes the wallet, all its transactions and its hosted
// image.
func (s *WalletService) DeleteWallet(ctx context.Context, id string) error {
	w, err := s.storage.GetWallet(ctx, id)
	if err != nil {
		return fmt.Errorf("load wallet %s: %w", id, err)
	}

	if err := s.storage.DeleteTransactionsByWallet(ctx, id); err != nil {
		return fmt.Errorf("delete transactions of wallet %s: %w", id, err)
	}
	if err := s.storage.DeleteWallet(ctx, id); err != nil {
		return fmt.Errorf("delete wallet %s: %w", id, err)
	}

	if s.summaries != nil {
		s.summaries.Invalidate(w.UID)
	}
	if images.Hosted(w.Image) {
		s.destroyImage(ctx, w.Image)
	}
	return nil
}

func (s *WalletService) GetWallet(ctx context.Context, id string) (core.Wallet, error) {
	return s.storage.GetWallet(ctx, id)
}

func (s *WalletService) ListWallets(ctx context.Context, uid string) ([]core.Wallet, error) {
	return s.storage.ListWalletsByUser(ctx, uid)
}

func (s *WalletService) destroyImage(ctx context.Context, url string) {
	if s.images == nil {
		return
	}
	if err := s.images.Destroy(ctx, url); err != nil {
		// The database write already succeeded, an orphaned image is
		// not worth failing the request over.
		slog.ErrorContext(ctx, "Failed to remove hosted image", "url", url, "error", err)
	}
}
