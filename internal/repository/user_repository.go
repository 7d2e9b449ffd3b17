package repository

import (
	"unilearn_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) CreateStudent(student *model.Student) error {
	return r.DB.Omit(clause.Associations).Create(student).Error
}

func (r *UserRepository) CreateTeacher(teacher *model.Teacher) error {
	return r.DB.Omit(clause.Associations).Create(teacher).Error
}

func (r *UserRepository) FindStudentByID(id uint) (*model.Student, error) {
	var student model.Student
	err := r.DB.Preload("User").First(&student, id).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *UserRepository) FindTeacherByID(id uint) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.DB.Preload("User").First(&teacher, id).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}
