package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sankalp_backend/internal/config"
	"sankalp_backend/internal/model"
	"sankalp_backend/internal/repository"
	"sankalp_backend/internal/util"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"gorm.io/gorm"
)

// Location 远程存储给出预签名 URL，本地存储给出文件路径
type Location struct {
	URL  string
	Path string
}

// StorageProvider 定义通用存储接口
type StorageProvider interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Locate(ctx context.Context, key, filename string) (Location, error)
}

// LocalStorageProvider 本地存储实现
type LocalStorageProvider struct {
	Root string
}

func NewLocalStorageProvider(root string) (*LocalStorageProvider, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	return &LocalStorageProvider{Root: root}, nil
}

func (p *LocalStorageProvider) path(key string) (string, error) {
	dst := filepath.Join(p.Root, filepath.FromSlash(key))
	root, _ := filepath.Abs(p.Root)
	abs, _ := filepath.Abs(dst)
	if !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return dst, nil
}

func (p *LocalStorageProvider) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	dst, err := p.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, reader)
	return err
}

func (p *LocalStorageProvider) Delete(_ context.Context, key string) error {
	dst, err := p.path(key)
	if err != nil {
		return err
	}
	return os.Remove(dst)
}

func (p *LocalStorageProvider) Locate(_ context.Context, key, _ string) (Location, error) {
	dst, err := p.path(key)
	if err != nil {
		return Location{}, err
	}
	if _, err := os.Stat(dst); err != nil {
		return Location{}, util.ErrMaterialNotFound
	}
	return Location{Path: dst}, nil
}

// MinioStorageProvider MinIO存储实现，下载走预签名 URL
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

// EnsureBucket 启动时确保 bucket 存在
func (p *MinioStorageProvider) EnsureBucket(ctx context.Context) error {
	exists, err := p.Client.BucketExists(ctx, p.Config.MinioBucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return p.Client.MakeBucket(ctx, p.Config.MinioBucket, minio.MakeBucketOptions{})
}

func (p *MinioStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (p *MinioStorageProvider) Delete(ctx context.Context, key string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, key, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) Locate(ctx context.Context, key, filename string) (Location, error) {
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", filename))
	u, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, key, p.Config.PresignTTL, params)
	if err != nil {
		return Location{}, err
	}
	return Location{URL: u.String()}, nil
}

func NewStorageProvider(cfg *config.StorageConfig) (StorageProvider, error) {
	switch cfg.Type {
	case util.StorageMinio:
		return NewMinioStorageProvider(cfg)
	case util.StorageLocal, "":
		return NewLocalStorageProvider(cfg.LocalPath)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}

// StorageService 课程资料的上传与受控下载
type StorageService struct {
	Provider   StorageProvider
	CourseRepo *repository.CourseRepository
	AccessRepo *repository.AccessRepository
}

func NewStorageService(provider StorageProvider, courseRepo *repository.CourseRepository, accessRepo *repository.AccessRepository) *StorageService {
	return &StorageService{
		Provider:   provider,
		CourseRepo: courseRepo,
		AccessRepo: accessRepo,
	}
}

func (s *StorageService) UploadMaterial(ctx context.Context, moduleID uint, filename string, reader io.Reader, size int64) (*model.Material, error) {
	module, err := s.CourseRepo.FindModule(moduleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrModuleNotFound
	} else if err != nil {
		return nil, err
	}

	ext, err := util.ValidateMaterialFile(filename)
	if err != nil {
		return nil, util.NewValidationError(err.Error())
	}
	contentType, body, err := util.SniffContentType(reader)
	if err != nil {
		return nil, err
	}
	if util.IsExecutable(contentType) {
		return nil, util.NewValidationError("invalid file type: " + contentType)
	}

	key := fmt.Sprintf("materials/%d/%d/%s%s", module.CourseID, module.ID, uuid.NewString(), ext)
	if err := s.Provider.Upload(ctx, key, body, size, contentType); err != nil {
		return nil, fmt.Errorf("upload material: %w", err)
	}

	material := &model.Material{
		ModuleID:  module.ID,
		CourseID:  module.CourseID,
		Material:  filepath.Base(filename),
		ObjectKey: key,
		CreatedAt: time.Now(),
	}
	if err := s.CourseRepo.CreateMaterial(material); err != nil {
		// 记录写入失败时清理已上传的对象
		_ = s.Provider.Delete(ctx, key)
		return nil, err
	}
	return material, nil
}

// LocateMaterial 下载资料同样要求持有课程授权，管理员除外
func (s *StorageService) LocateMaterial(ctx context.Context, studentID uint, isAdmin bool, materialID uint) (*model.Material, Location, error) {
	material, err := s.CourseRepo.FindMaterial(materialID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Location{}, util.ErrMaterialNotFound
	} else if err != nil {
		return nil, Location{}, err
	}

	if !isAdmin {
		ok, err := s.AccessRepo.HasAccess(studentID, material.CourseID)
		if err != nil {
			return nil, Location{}, err
		}
		if !ok {
			return nil, Location{}, util.Deny(util.ReasonNoAccessGrant, nil)
		}
	}

	if material.ObjectKey == "" {
		// 创建课程时录入的资料只是链接
		if strings.HasPrefix(material.Material, "http://") || strings.HasPrefix(material.Material, "https://") {
			return material, Location{URL: material.Material}, nil
		}
		return nil, Location{}, util.ErrMaterialNotFound
	}

	loc, err := s.Provider.Locate(ctx, material.ObjectKey, material.Material)
	if err != nil {
		return nil, Location{}, err
	}
	return material, loc, nil
}
