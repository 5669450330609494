package service

import (
	"errors"
	"fmt"
	"strings"

	"sankalp_backend/internal/model"
	"sankalp_backend/internal/repository"
	"sankalp_backend/internal/util"

	"gorm.io/gorm"
)

type CreateModuleRequest struct {
	Title     string   `json:"title" binding:"required"`
	Day       int      `json:"day" binding:"required,min=1"`
	Week      *int     `json:"week" binding:"required"`
	VideoURL  string   `json:"videoUrl" binding:"required,videourl"`
	Materials []string `json:"materials"`
}

type CreateCourseRequest struct {
	Title       string                `json:"title" binding:"required"`
	Description string                `json:"description"`
	Thumbnail   string                `json:"thumbnail"`
	Syllabus    string                `json:"syllabus"`
	Modules     []CreateModuleRequest `json:"modules" binding:"required,min=1,dive"`
}

type CourseService struct {
	CourseRepo *repository.CourseRepository
}

func NewCourseService(courseRepo *repository.CourseRepository) *CourseService {
	return &CourseService{CourseRepo: courseRepo}
}

func (s *CourseService) List() ([]model.Course, error) {
	return s.CourseRepo.List()
}

func (s *CourseService) Modules(courseID uint) ([]model.Module, error) {
	return s.CourseRepo.ListModules(courseID)
}

func (s *CourseService) Materials(courseID uint) ([]model.Material, error) {
	return s.CourseRepo.ListMaterials(courseID)
}

func validateModules(modules []CreateModuleRequest) error {
	if len(modules) == 0 {
		return util.NewValidationError("At least one module is required")
	}
	for i, m := range modules {
		if strings.TrimSpace(m.Title) == "" || m.Day <= 0 || m.Week == nil || m.VideoURL == "" {
			return util.NewValidationError(fmt.Sprintf("Module %d is missing title, day, week or videoUrl", i+1))
		}
		if _, ok := util.YouTubeID(m.VideoURL); !ok {
			return util.NewValidationError(fmt.Sprintf("Module %d has an invalid YouTube URL", i+1))
		}
	}
	return nil
}

// Create 课程及其课时、资料一次性写入
func (s *CourseService) Create(req CreateCourseRequest) (*model.Course, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, util.NewValidationError("Course title is required")
	}
	if err := validateModules(req.Modules); err != nil {
		return nil, err
	}

	course := &model.Course{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		Syllabus:    req.Syllabus,
	}
	for _, m := range req.Modules {
		module := model.Module{
			Title:    strings.TrimSpace(m.Title),
			Day:      m.Day,
			Week:     m.Week,
			VideoURL: strings.TrimSpace(m.VideoURL),
		}
		for _, name := range m.Materials {
			if name = strings.TrimSpace(name); name != "" {
				module.Materials = append(module.Materials, model.Material{Material: name})
			}
		}
		course.Modules = append(course.Modules, module)
	}

	if err := s.CourseRepo.CreateWithModules(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Delete(id uint) error {
	err := s.CourseRepo.Delete(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrCourseNotFound
	}
	return err
}
