// Package prelude emits the four built-in functions every TPC program
// links against (§4.2): getChar, getInt, putChar, putInt. Their bodies are
// hand-written NASM, emitted verbatim rather than generated from an AST --
// grounded on the original implementation's defaultFunctionWritter.c, which
// also writes these four bodies as fixed text rather than synthesizing
// them from the compiler's own code-generation rules.
package prelude

import (
	"fmt"
	"io"
)

// Write emits the I/O prelude to w: a private __getCharAux__ helper used by
// getChar and getInt, followed by getChar, getInt, putChar, and putInt.
// Registers r11/r12 are reserved for use inside this prelude only (§4.6);
// nothing else in the emitted program may assume their contents survive a
// call into one of these four functions.
func Write(w io.Writer) error {
	const body = `;; ---- built-in I/O prelude (hand-written, emitted verbatim) ----

; __getCharAux__: reads exactly one byte from stdin into al.
; Returns the byte in al; al=0 and ZF set on EOF.
__getCharAux__:
    push rbp
    mov rbp, rsp
    sub rsp, 8
    xor eax, eax
    mov [rbp-8], al
    mov rax, 0              ; sys_read
    mov rdi, 0              ; fd 0 = stdin
    lea rsi, [rbp-8]
    mov rdx, 1
    syscall
    cmp rax, 1
    jne .eof
    movzx eax, byte [rbp-8]
    leave
    ret
.eof:
    xor eax, eax
    leave
    ret

; getChar(void) char: reads a character and the newline that follows it,
; returns the character.
getChar:
    push rbp
    mov rbp, rsp
    call __getCharAux__
    push rax
    call __getCharAux__      ; discard the trailing newline
    pop rax
    leave
    ret

; getInt(void) int: reads an optional '-', then decimal digits until a
; non-digit, returns the signed value.
getInt:
    push rbp
    mov rbp, rsp
    sub rsp, 16
    mov qword [rbp-8], 0     ; accumulator
    mov byte [rbp-16], 0     ; negative flag
    call __getCharAux__
    cmp al, '-'
    jne .digits
    mov byte [rbp-16], 1
    call __getCharAux__
.digits:
    cmp al, '0'
    jl .done
    cmp al, '9'
    jg .done
    movzx rcx, al
    sub rcx, '0'
    mov rax, [rbp-8]
    imul rax, rax, 10
    add rax, rcx
    mov [rbp-8], rax
    call __getCharAux__
    jmp .digits
.done:
    mov rax, [rbp-8]
    cmp byte [rbp-16], 0
    je .positive
    neg rax
.positive:
    leave
    ret

; putChar(char c) void: writes one byte to stdout.
putChar:
    push rbp
    mov rbp, rsp
    sub rsp, 8
    mov [rbp-8], dil
    mov rax, 1               ; sys_write
    mov rdi, 1                ; fd 1 = stdout
    lea rsi, [rbp-8]
    mov rdx, 1
    syscall
    leave
    ret

; putInt(int n) void: writes the signed decimal rendering of n.
putInt:
    push rbp
    mov rbp, rsp
    sub rsp, 32
    mov eax, edi
    mov r11, rsp             ; r11: cursor into the scratch digit buffer
    add r11, 31
    mov byte [r11], 0
    mov r12, 0                ; r12: negative flag
    cmp eax, 0
    jge .convert
    mov r12, 1
    neg eax
.convert:
    xor edx, edx
    mov ecx, 10
.loop:
    xor edx, edx
    div ecx
    add dl, '0'
    dec r11
    mov [r11], dl
    cmp eax, 0
    jne .loop
    cmp r12, 0
    je .emit
    dec r11
    mov byte [r11], '-'
.emit:
    mov rsi, r11
    lea rdx, [rsp+31]
    sub rdx, r11
    mov rax, 1                ; sys_write
    mov rdi, 1
    syscall
    leave
    ret
`
	_, err := fmt.Fprint(w, body)
	return err
}
