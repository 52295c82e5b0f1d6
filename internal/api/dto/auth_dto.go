package dto

// SignupForm 注册表单（application/x-www-form-urlencoded）
type SignupForm struct {
	Username string `form:"username"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

// LoginForm 登录表单
type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}
