package repository

import (
	"sankalp_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

// CreateWithModules 课程、课时与资料在同一事务中写入，任一步失败整体回滚
func (r *CourseRepository) CreateWithModules(course *model.Course) error {
	modules := course.Modules
	course.Modules = nil

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Modules", "Materials").Create(course).Error; err != nil {
			return err
		}

		for i := range modules {
			m := &modules[i]
			m.CourseID = course.ID
			materials := m.Materials
			m.Materials = nil
			if err := tx.Omit("Materials").Create(m).Error; err != nil {
				return err
			}

			for j := range materials {
				materials[j].ModuleID = m.ID
				materials[j].CourseID = course.ID
			}
			if len(materials) > 0 {
				if err := tx.Create(&materials).Error; err != nil {
					return err
				}
			}
			m.Materials = materials
		}
		return nil
	})

	course.Modules = modules
	return err
}

func (r *CourseRepository) List() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Order("id ASC").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) FindModule(id uint) (*model.Module, error) {
	var module model.Module
	err := r.DB.First(&module, id).Error
	return &module, err
}

// ListModules 按 day 排序，day 相同按 id 保证顺序稳定
func (r *CourseRepository) ListModules(courseID uint) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.Where("course_id = ?", courseID).
		Order("day ASC").Order("id ASC").
		Find(&modules).Error
	return modules, err
}

func (r *CourseRepository) ListMaterials(courseID uint) ([]model.Material, error) {
	var materials []model.Material
	err := r.DB.Where("course_id = ?", courseID).
		Order("module_id ASC").Order("id ASC").
		Find(&materials).Error
	return materials, err
}

func (r *CourseRepository) FindMaterial(id uint) (*model.Material, error) {
	var material model.Material
	err := r.DB.First(&material, id).Error
	return &material, err
}

func (r *CourseRepository) CreateMaterial(material *model.Material) error {
	return r.DB.Create(material).Error
}

// Delete 依赖外键级联删除课时、资料、授权与进度
func (r *CourseRepository) Delete(id uint) error {
	result := r.DB.Delete(&model.Course{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CourseRepository) CountModules(courseIDs []uint) (map[uint]int, error) {
	type row struct {
		CourseID uint
		Total    int
	}
	var rows []row
	counts := make(map[uint]int, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}
	err := r.DB.Model(&model.Module{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error
	for _, rw := range rows {
		counts[rw.CourseID] = rw.Total
	}
	return counts, err
}
