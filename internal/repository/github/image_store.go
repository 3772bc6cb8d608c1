package github

import (
	"context"
	"fmt"
	"log"
	"path"

	gh "github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	apperrors "github.com/yourusername/kquiz-api/internal/pkg/errors"
)

// ImageStore хранит изображения вопросов в GitHub-репозитории.
// pic_path, который получает ядро, — это путь вида "/quiz/<имя файла>";
// в репозитории файл лежит под "public/quiz/<имя файла>", а клиент
// достраивает raw-URL самостоятельно.
type ImageStore struct {
	client *gh.Client
	owner  string
	repo   string
	branch string
}

// Config содержит настройки GitHub-хранилища изображений
type Config struct {
	Owner  string
	Repo   string
	Branch string
	Token  string
}

// NewImageStore создает хранилище изображений поверх GitHub Contents API
func NewImageStore(cfg Config) (*ImageStore, error) {
	if cfg.Owner == "" || cfg.Repo == "" || cfg.Token == "" {
		return nil, fmt.Errorf("github image store requires owner, repo and token")
	}
	branch := cfg.Branch
	if branch == "" {
		branch = "main"
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	httpClient := oauth2.NewClient(context.Background(), ts)

	return &ImageStore{
		client: gh.NewClient(httpClient),
		owner:  cfg.Owner,
		repo:   cfg.Repo,
		branch: branch,
	}, nil
}

// Upload записывает изображение в репозиторий и возвращает pic_path
func (s *ImageStore) Upload(ctx context.Context, fileName string, data []byte) (string, error) {
	repoPath := "public/quiz/" + fileName

	opts := &gh.RepositoryContentFileOptions{
		Message: gh.String(fmt.Sprintf("Add quiz image %s", fileName)),
		Content: data,
		Branch:  gh.String(s.branch),
	}

	_, _, err := s.client.Repositories.CreateFile(ctx, s.owner, s.repo, repoPath, opts)
	if err != nil {
		log.Printf("[ImageStore] Ошибка загрузки изображения %s в GitHub: %v", fileName, err)
		return "", fmt.Errorf("%w: upload %s: %v", apperrors.ErrImageStore, fileName, err)
	}

	return "/quiz/" + fileName, nil
}

// Delete удаляет изображение по pic_path. Для удаления Contents API
// требует SHA текущей версии файла, поэтому сначала читаем метаданные.
func (s *ImageStore) Delete(ctx context.Context, picPath string) error {
	repoPath := "public" + picPath

	content, _, _, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, repoPath,
		&gh.RepositoryContentGetOptions{Ref: s.branch})
	if err != nil {
		log.Printf("[ImageStore] Ошибка получения метаданных изображения %s: %v", picPath, err)
		return fmt.Errorf("%w: stat %s: %v", apperrors.ErrImageStore, picPath, err)
	}
	if content == nil || content.SHA == nil {
		return fmt.Errorf("%w: no content metadata for %s", apperrors.ErrImageStore, picPath)
	}

	opts := &gh.RepositoryContentFileOptions{
		Message: gh.String(fmt.Sprintf("Delete quiz image %s", path.Base(picPath))),
		SHA:     content.SHA,
		Branch:  gh.String(s.branch),
	}

	if _, _, err := s.client.Repositories.DeleteFile(ctx, s.owner, s.repo, repoPath, opts); err != nil {
		log.Printf("[ImageStore] Ошибка удаления изображения %s из GitHub: %v", picPath, err)
		return fmt.Errorf("%w: delete %s: %v", apperrors.ErrImageStore, picPath, err)
	}
	return nil
}
