package repository

import (
	"unilearn_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.DB.Omit("Student", "Course").Create(enrollment).Error
}

func (r *EnrollmentRepository) Exists(studentID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *EnrollmentRepository) FindByID(studentID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) Save(enrollment *model.Enrollment) error {
	return r.DB.Omit("Student", "Course").Save(enrollment).Error
}

func (r *EnrollmentRepository) FindCoursesByStudentID(studentID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.
		Preload("Teacher.User").
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.student_id = ?", studentID).
		Order("courses.id ASC").
		Find(&courses).Error
	return courses, err
}

func (r *EnrollmentRepository) FindStudentsByCourseID(courseID uint) ([]model.Student, error) {
	var students []model.Student
	err := r.DB.
		Preload("User").
		Joins("JOIN enrollments ON enrollments.student_id = students.id").
		Where("enrollments.course_id = ?", courseID).
		Order("students.id ASC").
		Find(&students).Error
	return students, err
}

// FindIncomplete lists enrollments the completion latch has not closed yet.
func (r *EnrollmentRepository) FindIncomplete() ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Where("completed = ?", false).Find(&enrollments).Error
	return enrollments, err
}
