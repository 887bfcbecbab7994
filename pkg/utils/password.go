package utils

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt 只看前 72 字节，超长密码直接拒绝
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

const passwordCost = 10

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), passwordCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword hashed 为空（账号不存在）时也跑一次 bcrypt，登录耗时不泄露学号是否注册
func CheckPassword(pw, hashed string) bool {
	if hashed == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(pw))
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw))
	return err == nil
}

var dummyHash = sync.OnceValue(func() []byte {
	b, err := bcrypt.GenerateFromPassword([]byte("orientation-dummy"), passwordCost)
	if err != nil {
		panic(errors.Join(errors.New("dummy hash"), err))
	}
	return b
})
