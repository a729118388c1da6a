package seeders

import "gearguard/pkg/constants"

var teamsData = []struct {
	Name        string
	Description string
}{
	{Name: "Механики", Description: "Станки, прессы, конвейеры"},
	{Name: "Электрики", Description: "Силовое оборудование и щиты"},
	{Name: "ИТ", Description: "Серверы, сеть, рабочие места"},
}

// Пароль демо-пользователей одинаковый, задаётся флагом --password.
var usersData = []struct {
	Name  string
	Email string
	Role  constants.Role
	Team  string
}{
	{Name: "Администратор", Email: "admin@gearguard.local", Role: constants.RoleAdmin},
	{Name: "Мария Менеджер", Email: "manager@gearguard.local", Role: constants.RoleManager},
	{Name: "Иван Механик", Email: "mechanic@gearguard.local", Role: constants.RoleTechnician, Team: "Механики"},
	{Name: "Пётр Электрик", Email: "electric@gearguard.local", Role: constants.RoleTechnician, Team: "Электрики"},
	{Name: "Олег Сисадмин", Email: "it@gearguard.local", Role: constants.RoleTechnician, Team: "ИТ"},
	{Name: "Анна Оператор", Email: "operator@gearguard.local", Role: constants.RoleEmployee},
}

var equipmentData = []struct {
	Name     string
	Code     string
	Location string
	Team     string
}{
	{Name: "Токарный станок 16К20", Code: "LATHE-01", Location: "Цех 1", Team: "Механики"},
	{Name: "Гидравлический пресс", Code: "PRESS-01", Location: "Цех 2", Team: "Механики"},
	{Name: "Главный распределительный щит", Code: "PANEL-01", Location: "Подстанция", Team: "Электрики"},
	{Name: "Сервер 1С", Code: "SRV-01", Location: "Серверная", Team: "ИТ"},
	{Name: "Погрузчик", Code: "FORK-01", Location: "Склад"},
}
