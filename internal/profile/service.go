package profile

import (
	"nft-marketplace/pkg/apperr"

	"gorm.io/gorm"
)

// Service 档案协作方接口。买家首次成交时自动建档。
type Service interface {
	HasProfile(address string) (bool, error)
	Ensure(tx *gorm.DB, address string) error
	GetVipLevel(address string) (VipLevel, error)
	SetVipLevel(tx *gorm.DB, address string, level VipLevel) error
	Get(address string) (*Profile, error)
}

type service struct {
	repo Repository
}

// NewService 创建档案服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// HasProfile 档案是否存在
func (s *service) HasProfile(address string) (bool, error) {
	p, err := s.repo.Get(address)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}

// Ensure 确保档案存在，不存在则建档（Level0）
func (s *service) Ensure(tx *gorm.DB, address string) error {
	repo := s.repo.WithTx(tx)
	p, err := repo.Get(address)
	if err != nil {
		return err
	}
	if p != nil {
		return nil
	}
	return repo.Create(&Profile{Address: address, VipLevel: VipLevel0})
}

// GetVipLevel 查询VIP等级；未建档返回NotFound
func (s *service) GetVipLevel(address string) (VipLevel, error) {
	p, err := s.repo.Get(address)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, apperr.NotFound("profile_not_found", "no profile for address")
	}
	return p.VipLevel, nil
}

// SetVipLevel 设置VIP等级
func (s *service) SetVipLevel(tx *gorm.DB, address string, level VipLevel) error {
	return s.repo.WithTx(tx).SetVipLevel(address, level)
}

// Get 获取档案
func (s *service) Get(address string) (*Profile, error) {
	p, err := s.repo.Get(address)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("profile_not_found", "no profile for address")
	}
	return p, nil
}
