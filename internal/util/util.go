package util

import (
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// GetCodeHash 返回代码的keccak256，带0x前缀
func GetCodeHash(code []byte) string {
	return hexutil.Encode(crypto.Keccak256(code))
}

// Selector 计算函数签名的4字节选择器，如 transfer(address,uint256)
func Selector(signature string) [4]byte {
	var sel [4]byte
	copy(sel[:], crypto.Keccak256([]byte(signature)))
	return sel
}

func FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
