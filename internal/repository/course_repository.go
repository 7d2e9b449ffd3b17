package repository

import (
	"strings"

	"unilearn_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Omit("Teacher", "Modules").Create(course).Error
}

// FindByID loads the course with its owner, ordered modules and their quizzes.
func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Teacher.User").
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Modules.Quizzes").
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// FindPlainByID loads only the course row.
func (r *CourseRepository) FindPlainByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindAll() ([]model.Course, error) {
	var courses []model.Course
	err := r.summaryQuery().Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindByPublic(public bool) ([]model.Course, error) {
	var courses []model.Course
	err := r.summaryQuery().Where("is_public = ?", public).Find(&courses).Error
	return courses, err
}

// SearchPublicByTitle matches title case-insensitively; wildcards in search are literal.
func (r *CourseRepository) SearchPublicByTitle(search string) ([]model.Course, error) {
	var courses []model.Course
	pattern := "%" + escapeLike(model.TitleKey(search)) + "%"
	err := r.summaryQuery().
		Where("is_public = ?", true).
		Where("title_key LIKE ? ESCAPE '!'", pattern).
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) UpdateFields(course *model.Course, fields map[string]interface{}) error {
	return r.DB.Model(&model.Course{}).Where("id = ?", course.ID).Updates(fields).Error
}

func (r *CourseRepository) SetPublic(course *model.Course, public bool) error {
	if err := r.DB.Model(&model.Course{}).Where("id = ?", course.ID).Update("is_public", public).Error; err != nil {
		return err
	}
	course.IsPublic = public
	return nil
}

// Delete removes the course together with its modules, quizzes, attempts and
// enrollments. It reports whether a course row was removed.
func (r *CourseRepository) Delete(id uint) (bool, error) {
	moduleIDs := r.DB.Model(&model.Module{}).Select("id").Where("course_id = ?", id)
	quizIDs := r.DB.Model(&model.Quiz{}).Select("id").Where("module_id IN (?)", moduleIDs)

	if err := r.DB.Where("quiz_id IN (?)", quizIDs).Delete(&model.QuizAttempt{}).Error; err != nil {
		return false, err
	}
	if err := r.DB.Where("module_id IN (?)", moduleIDs).Delete(&model.Quiz{}).Error; err != nil {
		return false, err
	}
	if err := r.DB.Where("course_id = ?", id).Delete(&model.Module{}).Error; err != nil {
		return false, err
	}
	if err := r.DB.Where("course_id = ?", id).Delete(&model.Enrollment{}).Error; err != nil {
		return false, err
	}

	res := r.DB.Delete(&model.Course{}, id)
	return res.RowsAffected > 0, res.Error
}

func (r *CourseRepository) summaryQuery() *gorm.DB {
	return r.DB.Preload("Teacher.User").Order("id ASC")
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
