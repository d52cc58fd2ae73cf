// Package hashid кодирует целочисленные идентификаторы записей в строковые
// публичные идентификаторы, чтобы не раскрывать последовательные ключи наружу.
package hashid

import (
	"errors"
	"fmt"

	"github.com/speps/go-hashids/v2"
)

// ErrInvalid возвращается, когда строку нельзя декодировать в один идентификатор.
var ErrInvalid = errors.New("invalid hashid")

// Encoder переводит идентификатор в публичную строку и обратно.
type Encoder interface {
	Encode(id int) (string, error)
	Decode(hash string) (int, error)
}

// Hashids реализует Encoder поверх библиотеки hashids.
type Hashids struct {
	h *hashids.HashID
}

// New создаёт кодировщик с солью, минимальной длиной и, при необходимости, своим алфавитом.
func New(salt string, minLength int, alphabet string) (*Hashids, error) {
	const op = "hashid.New"
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = minLength
	if alphabet != "" {
		hd.Alphabet = alphabet
	}
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Hashids{h: h}, nil
}

// Encode возвращает публичный идентификатор для id. Отрицательные значения не кодируются.
func (e *Hashids) Encode(id int) (string, error) {
	const op = "hashid.Encode"
	if id < 0 {
		return "", fmt.Errorf("%s: %w", op, ErrInvalid)
	}
	s, err := e.h.Encode([]int{id})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// Decode восстанавливает идентификатор. Строки, которые не были получены через Encode
// с теми же настройками, дают ErrInvalid.
func (e *Hashids) Decode(hash string) (int, error) {
	const op = "hashid.Decode"
	ids, err := e.h.DecodeWithError(hash)
	if err != nil || len(ids) != 1 {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalid)
	}
	// Библиотека принимает строки, не совпадающие с каноничной кодировкой.
	canonical, err := e.h.Encode(ids)
	if err != nil || canonical != hash {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalid)
	}
	return ids[0], nil
}
