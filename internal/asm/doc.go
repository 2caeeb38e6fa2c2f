// Package asm implements the translator: a multi-pass compiler from the
// register-machine assembly language to the isa.Program artifact the model
// loads and runs.
//
// Source is organized into two sections:
//
//	section data
//	  LIMIT:  word 10
//	          int 0 handler
//
//	section text
//	  handler: add r1, r1, 1
//	           iret
//	  start:   ld r1, LIMIT
//	           cmp r1, r1, r0
//	           je  r1, done
//	           jmp start
//	  done:    halt
//
// Translation runs in the two-pass style of a classic assembler: Lex
// and a first symbol-allocating walk assign addresses to labels as they're
// declared (mirroring a parser's single-pass scan building a syntax and
// symbol table together); a second walk resolves every operand reference
// against the completed symbol table and emits the final code and data
// vectors (mirroring a generator's encode pass). See Grammar for the source
// syntax and translator.go for the pass structure.
package asm

// Grammar declares the syntax of the source language in EBNF.
var Grammar = (`
program        = { section } ;

section        = "section" ( "text" | "data" ) newline { line } ;

line           = [ label ':' ] [ content ] [ comment ] newline ;

label          = ident ;

content        = word | vector | instruction ;

word           = "word" literal ;

vector         = "int" integer operand ;

instruction    = mnemonic [ operand { [ ',' ] operand } ] ;

mnemonic       = ident ;

operand        = register | literal | label ;

register       = "r0" | "r1" | "r2" | "r3" | "r4" | "sp" | "pc" ;

literal        = integer | char ;

char           = "'" rune "'" ;

integer        = [ '-' ] decimal { decimal } ;

comment        = ';' { char } ;

decimal        = '0' | '1' | '2' | '3' | '4' | '5' | '6' | '7' | '8' | '9' ;

ident          = ( 'A'..'Z' | 'a'..'z' | '_' ) { 'A'..'Z' | 'a'..'z' | decimal | '_' } ;
`)
